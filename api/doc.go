// Package api provides the HTTP REST API of the campus quest server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"world": "campus"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/command - Any console command ({"command": "go north"})
//   - POST /api/sessions/{id}/move - Movement only ({"command": "go north"})
//   - POST /api/sessions/{id}/take, /drop - Item actions ({"item": "tcard"})
//   - POST /api/sessions/{id}/submit, /quit, /reset, /continue
//   - GET /api/sessions/{id}/history - Paged location history (?page&limit&order)
//
// Worlds:
//   - GET /api/worlds - List loadable worlds
//   - GET /api/worlds/{name} - The full catalog of one world
//   - POST /api/simulate - Replay commands on a fresh engine, optionally
//     verifying the id log against "expected_log"
//
// Also served: /ws?session={id} (live snapshots), /healthz and /metrics.
//
// Errors are returned as JSON with a status derived from the error code:
//
//	{
//	  "error": "session ab12 not found",
//	  "code": "SESSION_NOT_FOUND"
//	}
package api
