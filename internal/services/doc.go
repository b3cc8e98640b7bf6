// Package services implements the HTTP clients hitline depends on.
//
// # Interfaces
//
// The engine in package tasks only sees [Generator], [HintGenerator], [Catalog] and [SimilarArtists],
// so every client can be swapped for a test double.
//
// # Transport
//
// All clients share [APIService], a thin wrapper over [http.Client] that applies default headers and an
// optional token-bucket limiter ([rate.Limiter]) before each request.
//
// # Anthropic
//
// [ClaudeService] calls the messages API. Replies are fence-stripped and decoded by [ParseResponse],
// which is the single place where model output becomes typed data.
//
// # Spotify
//
// [SpotifyService] searches tracks with the client-credentials grant from [clientcredentials].
// A static access token can be supplied instead through Authenticate.
//
// # Last.fm
//
// [LastFMService] proxies artist.getsimilar.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.UpstreamError] : non-2xx status from any provider
//   - [shared.MalformedResponseError] : model output that does not decode into the requested shape
//   - [shared.ErrAPIRequest] : transport failure
//   - [shared.ErrMissingCredentials] : a client was built without its key
package services
