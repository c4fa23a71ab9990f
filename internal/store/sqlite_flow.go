package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
	"github.com/oklog/ulid/v2"
)

// CreateFlowNode stores a diagram node.
func (s *SQLiteStore) CreateFlowNode(ctx context.Context, in types.NewFlowNode) (*types.FlowNode, error) {
	n := types.FlowNode{
		ID:        ulid.Make().String(),
		Label:     in.Label,
		Type:      in.Type,
		X:         in.X,
		Y:         in.Y,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flow_nodes (id, label, type, x, y, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.Label, n.Type, n.X, n.Y, formatTime(n.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert flow node: %w", err)
	}
	return &n, nil
}

// ListFlowNodes returns every node in creation order.
func (s *SQLiteStore) ListFlowNodes(ctx context.Context) ([]types.FlowNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, type, x, y, created_at
		FROM flow_nodes
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query flow nodes: %w", err)
	}
	defer rows.Close()

	nodes := []types.FlowNode{}
	for rows.Next() {
		var n types.FlowNode
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Label, &n.Type, &n.X, &n.Y, &createdAt); err != nil {
			return nil, fmt.Errorf("scan flow node: %w", err)
		}
		n.CreatedAt = parseTime(createdAt)
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow nodes: %w", err)
	}
	return nodes, nil
}

// DeleteFlowNode removes a node and every connection that starts or ends at it.
func (s *SQLiteStore) DeleteFlowNode(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM flow_nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete flow node: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM flow_connections WHERE from_id = ? OR to_id = ?`, id, id); err != nil {
		return fmt.Errorf("delete flow connections: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateFlowConnection stores a directed edge. Both endpoints must exist.
func (s *SQLiteStore) CreateFlowConnection(ctx context.Context, in types.NewFlowConnection) (*types.FlowConnection, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	want := 2
	if in.From == in.To {
		want = 1
	}
	var found int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flow_nodes WHERE id IN (?, ?)`, in.From, in.To).Scan(&found); err != nil {
		return nil, fmt.Errorf("check endpoints: %w", err)
	}
	if found != want {
		return nil, ErrUnknownNode
	}

	c := types.FlowConnection{
		ID:        ulid.Make().String(),
		From:      in.From,
		To:        in.To,
		Label:     in.Label,
		CreatedAt: time.Now().UTC(),
	}
	var label sql.NullString
	if c.Label != nil {
		label = sql.NullString{String: *c.Label, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO flow_connections (id, from_id, to_id, label, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.From, c.To, label, formatTime(c.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert flow connection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &c, nil
}

// ListFlowConnections returns every connection in creation order.
func (s *SQLiteStore) ListFlowConnections(ctx context.Context) ([]types.FlowConnection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_id, to_id, label, created_at
		FROM flow_connections
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query flow connections: %w", err)
	}
	defer rows.Close()

	conns := []types.FlowConnection{}
	for rows.Next() {
		var c types.FlowConnection
		var label sql.NullString
		var createdAt string
		if err := rows.Scan(&c.ID, &c.From, &c.To, &label, &createdAt); err != nil {
			return nil, fmt.Errorf("scan flow connection: %w", err)
		}
		if label.Valid {
			l := label.String
			c.Label = &l
		}
		c.CreatedAt = parseTime(createdAt)
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow connections: %w", err)
	}
	return conns, nil
}
