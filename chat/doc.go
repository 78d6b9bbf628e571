// Package chat adapts the Twitch IRC transport to the bot core.
//
// Client wraps gempir/go-twitch-irc for a single channel: it implements the
// SendMessage sink the scheduler and command handlers write to, and forwards
// inbound chat lines to a handler the room installs. Credentials come from
// config; when TWITCH_OAUTH_TOKEN is absent the client falls back to a
// stored token from the oauth_tokens table for provider "twitch", which the
// oauth refresher keeps fresh.
package chat
