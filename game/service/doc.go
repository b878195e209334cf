// Package service provides the business logic layer for campus quest.
//
// GameService is the main interface. It owns session isolation and turns
// player commands into engine calls, the way the console loop does:
// movement commands follow exits of the current location, "take", "drop"
// and "inspect" act on items, and "look", "inventory", "score", "log",
// "submit early" and "quit" are menu commands.
//
// SessionManager stores sessions and ConfigManager loads world catalogs;
// both are implemented in sibling packages so that transports only depend
// on this one.
//
// Usage:
//
//	sessions := session.NewManager()
//	worlds, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessions, worlds, service.WithLogger(logger))
//
//	info, err := svc.CreateSession(ctx, "campus")
//	res, err := svc.Command(ctx, info.ID, "go west")
//
// Errors carry samber/oops codes (SESSION_NOT_FOUND, SESSION_ENDED,
// WORLD_NOT_FOUND, INVALID_COMMAND) that transports map to status codes.
package service
