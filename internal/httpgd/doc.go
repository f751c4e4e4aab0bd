// Package httpgd provides an HTTP and push-channel client for a graphics-device server.
//
// # Overview
//
// The server keeps a history buffer of rendered plots and exposes a small
// JSON API plus an optional websocket push channel that announces state
// changes. This package is the transport layer only: it issues requests and
// hands back typed payloads. Retry, degradation and change detection live in
// the supervisor package.
//
// # Endpoints
//
//   - GET /state: RemoteState {"upid", "hsize", "active"}
//   - GET /plots: PlotList {"state", "plots": [{"id"}]}
//   - GET /svg?id=ID|index=N&width=W&height=H&token=T&c=C: plot image
//   - GET /remove?id=ID|index=N: remove one plot
//   - GET /clear: remove every plot
//   - ws://host/: push channel delivering RemoteState JSON objects
//
// # Credentials
//
// An optional opaque token is sent as the X-HTTPGD-TOKEN header on JSON,
// mutation and push requests. Image URLs carry it as the token query
// parameter instead, since image consumers cannot attach headers.
//
// # Usage
//
//	client, err := httpgd.NewClient("127.0.0.1:8288", token)
//	if err != nil {
//		return err
//	}
//	state, err := client.FetchState(ctx)
//	list, err := client.FetchPlots(ctx)
//	src := client.PlotImageURL(httpgd.ImageQuery{ID: list.Plots[0].ID, Width: 640, Height: 480})
//
// # Error Handling
//
// Network failures and HTTP status >= 400 are returned as wrapped errors.
// A 404 wraps ErrNotFound. Push payloads that are not state snapshots fail
// DecodeState with ErrMalformedPush.
package httpgd
