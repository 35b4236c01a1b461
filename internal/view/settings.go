package view

import "context"

type settingsKey struct{}

// Settings holds the per-request values every template can read.
type Settings struct {
	BasicMode bool
	Lang      string
	RTL       bool
	User      string
	IsAdmin   bool
}

// WithSettings stores s in the request context.
func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// SettingsFrom returns the request settings, or zero values when none were set.
func SettingsFrom(ctx context.Context) Settings {
	s, _ := ctx.Value(settingsKey{}).(Settings)
	return s
}

// IsBasicMode returns true if the "basic mode" flag is set in the request context.
func IsBasicMode(ctx context.Context) bool {
	return SettingsFrom(ctx).BasicMode
}
