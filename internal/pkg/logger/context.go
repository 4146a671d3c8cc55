package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey   contextKey = "logger"
	runIDKey    contextKey = "run_id"
	strategyKey contextKey = "strategy"
)

// WithContext 返回附带 context 中字段的 Logger
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	fields := make([]zap.Field, 0, 2)
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if strategy := GetStrategy(ctx); strategy != "" {
		fields = append(fields, zap.String("strategy", strategy))
	}

	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// FromContext 从 context 提取 Logger，不存在时返回全局 Logger
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}
	if lgr, ok := ctx.Value(loggerKey).(*Logger); ok && lgr != nil {
		return lgr.WithContext(ctx)
	}
	return L().WithContext(ctx)
}

// ToContext 将 Logger 放入 context
func ToContext(ctx context.Context, lgr *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, lgr)
}

// WithRunID 为一次分块调用设置 run ID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithStrategy 设置当前分块策略
func WithStrategy(ctx context.Context, strategy string) context.Context {
	return context.WithValue(ctx, strategyKey, strategy)
}

func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}

func GetStrategy(ctx context.Context) string {
	if strategy, ok := ctx.Value(strategyKey).(string); ok {
		return strategy
	}
	return ""
}
