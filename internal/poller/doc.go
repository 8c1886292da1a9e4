// Package poller keeps the mirror in step with the engine's REST API.
//
// The main components are:
//
//   - [EndpointClient]: performs one HTTP round trip and decodes the body
//     into a typed payload, classifying every failure as a FetchError
//   - [Scheduler]: owns the per-source state machine, fires requests on
//     each source's cadence and is the only writer of the snapshot store
//   - [Spec]: static description of one polled endpoint
//
// Every dispatch bumps the source's generation and stamps the request with
// it. A completion whose stamp no longer matches is stale and dropped, which
// is how superseded, cancelled and post-shutdown responses are kept out of
// the snapshot.
package poller
