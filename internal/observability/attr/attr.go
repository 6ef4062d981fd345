// Package attr provides slog attribute helpers shared across modules.
package attr

import (
	"context"
	"log/slog"
	"time"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

type correlationIDKey struct{}

// WithCorrelationID stores a correlation id on the context so log lines from
// one settlement can be stitched together.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// ExtractCorrelationID returns the correlation id attribute for the current
// context, or an empty-valued attribute when none was set.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return slog.String("correlation_id", id)
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func UserID(key string, id sharedtypes.UserID) slog.Attr { return slog.String(key, string(id)) }

func GameID(key string, id sharedtypes.GameID) slog.Attr { return slog.String(key, string(id)) }

func SeasonID(key string, id sharedtypes.SeasonID) slog.Attr { return slog.String(key, string(id)) }
