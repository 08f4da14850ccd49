// Package automod implements the moderation workflow core: the
// reporter-facing Report intake state machine, the moderator-facing
// Incident escalation state machine, the registry linking posted
// moderator prompts back to their incidents, and the Engine that routes
// inbound chat events between them. It is platform-agnostic; the
// discord package adapts a concrete chat service to the platform
// interfaces this package consumes.
package automod
