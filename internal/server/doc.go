// Package server exposes an [editor.Editor] over a JSON HTTP API.
//
// Every request runs under one mutex, so the editor sees input events one
// at a time exactly as it would from a single UI thread. Layout is the
// exception: the lock is released while the engine runs and re-taken to
// apply the result, which is checked against the graph as it is then.
//
// Routes:
//
//	GET    /api/flow                    current nodes, edges and UI state
//	POST   /api/nodes                   {kind, label, x?, y?}
//	PATCH  /api/nodes/{id}              {label?, x?, y?}
//	DELETE /api/nodes/{id}
//	POST   /api/edges                   {source, target}
//	DELETE /api/edges/{id}
//	POST   /api/layout
//	GET    /api/render                  scene geometry
//	GET    /api/render.svg
//	POST   /api/remote                  {name}
//	GET    /api/session
//	POST   /api/pointer/{down|move|up|cancel}  {x, y, id?}
//	POST   /api/select                  {id}; empty id clears
//	POST   /api/keys                    {key, text?}
//
// Errors are returned as {"code": ..., "error": ...} with a status derived
// from the error code.
package server
