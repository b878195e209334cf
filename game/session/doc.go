// Package session provides in-memory session management for the campus
// quest server.
//
// Manager implements service.SessionManager. Each session owns a private
// engine built from the world catalog and its own event history, so no two
// sessions share game state.
//
// Sessions use random 4-character hex IDs. Lookups ignore case. The manager
// is safe for concurrent use; engine calls on a single session are
// serialized by the service layer.
//
// Usage:
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", "campus", cat)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	go manager.RunCleanup(ctx, time.Minute, 24*time.Hour, nil)
package session
