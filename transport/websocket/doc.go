// Package websocket pushes live game snapshots to browser viewers.
//
// A central Hub owns every connection and runs a single event loop; each
// connection has a read goroutine (for disconnect detection and pongs) and a
// write goroutine. Hub implements service.Renderer: Render enqueues a
// snapshot without blocking and the loop fans it out to the viewers of that
// game.
//
// Message Protocol:
//
// Outgoing frames are JSON Message values: {key, event, game, text}, where
// game is the complete snapshot and text its chat rendering. The first frame
// after connecting has event "state"; later frames have event
// "state_update". Incoming frames are ignored.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, key.String(), &snapshot)
//	})
package websocket
