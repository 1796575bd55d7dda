// Package logger writes log lines through the standard logger and forwards
// errors to Rollbar when a token is configured.
package logger

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/rollbar/rollbar-go"
)

var rollbarEnabled atomic.Bool

// Init configures Rollbar. An empty token leaves reporting off.
func Init(token, env string) {
	if token == "" {
		rollbar.SetEnabled(false)
		rollbarEnabled.Store(false)
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetEnabled(true)
	rollbarEnabled.Store(true)
	log.Printf("Rollbar reporting enabled (env=%s)", env)
}

// Flush blocks until queued Rollbar items are sent.
func Flush() {
	if rollbarEnabled.Load() {
		rollbar.Wait()
	}
}

func Infof(format string, args ...any) {
	log.Printf(format, args...)
}

func Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[WARN] %s", msg)
	if rollbarEnabled.Load() {
		rollbar.Warning(msg)
	}
}

// Error logs err with a short description. extras end up as Rollbar custom data.
func Error(msg string, err error, extras map[string]any) {
	if extras != nil {
		log.Printf("[ERROR] %s: %v %v", msg, err, extras)
	} else {
		log.Printf("[ERROR] %s: %v", msg, err)
	}
	if !rollbarEnabled.Load() {
		return
	}
	if extras == nil {
		extras = map[string]any{}
	}
	extras["message"] = msg
	rollbar.Error(err, map[string]interface{}(extras))
}
