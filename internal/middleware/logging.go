package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LogAttrer is implemented by request and response messages that add their
// own fields to the RPC log line, such as how many receipts were uploaded.
type LogAttrer interface {
	LogAttrs() []slog.Attr
}

// LoggingInterceptor returns a Connect interceptor that logs one line per RPC
// with the procedure, session, duration and result code, plus any fields the
// messages contribute through LogAttrer.
// Install it inside RequireSession so the session ID is known.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("session_id", GetSessionID(ctx)), // empty for CreateSession
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			attrs = append(attrs, messageAttrs(req.Any())...)

			level, msg := slog.LevelInfo, "RPC ok"
			switch code := connect.CodeOf(err); {
			case err == nil:
				if resp != nil {
					attrs = append(attrs, messageAttrs(resp.Any())...)
				}
			case code == connect.CodeInternal || code == connect.CodeUnknown:
				level, msg = slog.LevelError, "RPC error"
				attrs = append(attrs, slog.String("code", code.String()), slog.Any("error", err))
			default:
				level, msg = slog.LevelWarn, "RPC error"
				attrs = append(attrs, slog.String("code", code.String()), slog.String("error", errorMessage(err)))
			}

			slog.LogAttrs(ctx, level, msg, attrs...)
			return resp, err
		}
	}
}

func messageAttrs(msg any) []slog.Attr {
	if la, ok := msg.(LogAttrer); ok {
		return la.LogAttrs()
	}
	return nil
}

func errorMessage(err error) string {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Message()
	}
	return err.Error()
}
