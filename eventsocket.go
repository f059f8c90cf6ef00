// Package eventsocket provides a Go client for a telephony engine's Event
// Socket control protocol.
//
// The protocol is line oriented: the client writes commands terminated by
// a blank line, and the engine answers with frames made of a header block
// and an optional body whose size is given by a Content-Length header.
// Every connection starts with a greeting from the engine followed by an
// "auth" command from the client.
//
// The package offers two kinds of session sharing that framing and
// handshake:
//
//   - [Client] runs one-shot command sessions: connect, authenticate, send
//     one api command, read one reply, disconnect.
//   - [Console] holds a long-lived subscription to the event feed,
//     reconnecting with backoff after failures, and keeps recent events in
//     a bounded [History].
//
// # Thread Safety
//
// [Client], [Console], [History] and [Catalog] are safe for concurrent use.
// A [Conn] may be written concurrently with a read, but must only be read
// by one goroutine.
//
// # Basic Usage
//
//	cfg := eventsocket.DefaultConfig()
//	client := eventsocket.NewClient(cfg, eventsocket.WithLogger(slog.Default()))
//
//	res, err := client.Run(ctx, "status")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Output)
//
//	console := eventsocket.NewConsole(cfg)
//	console.Start(ctx)
//	defer console.Stop()
//
//	tail := console.Tail(0, eventsocket.DefaultTailLimit)
//	for _, line := range tail.Items {
//	    fmt.Println(line.Text)
//	}
//
// # Observability
//
// Use [WithLogger], [WithOnSend], and [WithOnReceive] to add logging and
// monitoring. The secret of the auth command is masked whenever a
// [Command] is formatted.
package eventsocket
