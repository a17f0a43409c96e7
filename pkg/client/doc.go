// Package client implements the streaming chat client: a Session that owns the
// transcript, submits it to the relay and renders the streamed reply.
//
// A Session is built from two collaborators:
//
//   - a Transport opens one push channel per submission. HTTPTransport speaks
//     the relay's GET /chat event stream.
//   - a Surface renders turns. TerminalSurface renders assistant markdown with
//     glamour and redraws the live turn in place.
//
// Usage:
//
//	transport, err := client.NewHTTPTransport("http://localhost:3000")
//	if err != nil {
//	    return err
//	}
//	surface, err := client.NewTerminalSurface(os.Stdout, client.SurfaceOptions{WordWrap: 80})
//	if err != nil {
//	    return err
//	}
//	session := client.NewSession(transport, surface)
//	err = session.Submit(ctx, "Tell me about the role")
//
// A session handles one submission at a time. Submit returns ErrBusy while a
// reply is streaming. Partial output of a failed reply stays on the surface,
// marked failed, and is never committed to the transcript.
package client
