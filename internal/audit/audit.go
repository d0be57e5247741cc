// Package audit records administrative changes made through the dashboard.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultKey is the Redis list that holds audit entries
const DefaultKey = "dashboard:audit"

// DefaultMaxEntries caps the Redis list when no limit is configured
const DefaultMaxEntries = 1000

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
)

// ResourceType represents the type of resource being changed
type ResourceType string

const (
	ResourcePatient ResourceType = "patient"
	ResourceAdmin   ResourceType = "admin"
)

// Entry is one audit record
type Entry struct {
	ID            string        `json:"id"`
	Actor         string        `json:"actor"`
	OperationType OperationType `json:"operation"`
	ResourceType  ResourceType  `json:"resourceType"`
	ResourceID    string        `json:"resourceId"`
	Timestamp     time.Time     `json:"timestamp"`
	IPAddress     string        `json:"ipAddress,omitempty"`
	UserAgent     string        `json:"userAgent,omitempty"`
}

// Logger handles audit logging
type Logger struct {
	rdb        *redis.Client
	key        string
	maxEntries int64
	logger     *zap.Logger
}

// NewLogger creates an audit logger. A nil client logs to zap only.
func NewLogger(rdb *redis.Client, maxEntries int, logger *zap.Logger) *Logger {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Logger{
		rdb:        rdb,
		key:        DefaultKey,
		maxEntries: int64(maxEntries),
		logger:     logger,
	}
}

// Log writes an audit entry. Client details missing from entry are taken
// from ctx.
func (l *Logger) Log(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if client, ok := ClientFrom(ctx); ok {
		if entry.IPAddress == "" {
			entry.IPAddress = client.IPAddress
		}
		if entry.UserAgent == "" {
			entry.UserAgent = client.UserAgent
		}
	}

	l.logger.Info("Audit log entry",
		zap.String("audit_id", entry.ID),
		zap.String("actor", entry.Actor),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("ip_address", entry.IPAddress),
		zap.String("user_agent", entry.UserAgent),
	)

	if l.rdb == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, l.key, data)
		pipe.LTrim(ctx, l.key, 0, l.maxEntries-1)
		return nil
	})
	if err != nil {
		l.logger.Error("Failed to write audit log to redis",
			zap.Error(err),
			zap.String("operation", string(entry.OperationType)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return fmt.Errorf("failed to store audit entry: %w", err)
	}

	return nil
}

// Record logs an operation on a resource
func (l *Logger) Record(ctx context.Context, actor string, op OperationType, resource ResourceType, resourceID string) error {
	return l.Log(ctx, Entry{
		Actor:         actor,
		OperationType: op,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
}

// Recent returns up to limit entries, newest first
func (l *Logger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if l.rdb == nil {
		return []Entry{}, nil
	}
	if limit <= 0 || int64(limit) > l.maxEntries {
		limit = int(l.maxEntries)
	}

	raw, err := l.rdb.LRange(ctx, l.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			l.logger.Error("Failed to decode audit entry", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}
