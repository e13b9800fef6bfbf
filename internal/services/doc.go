// Package services defines the [Lister] and [Inserter] contracts used by a playlist transfer and implements them for
// the YouTube Data API v3.
//
// # YouTube Implementation
//
// [YouTubeService] pages through playlistItems.list with the API key (50 entries per page, the API maximum) and
// appends entries with playlistItems.insert using an OAuth2 bearer token.
//
// [NewTokenSource] returns a static [oauth2.TokenSource] for a bare access token, or a refreshing one when a refresh
// token and client credentials are configured. The token source is reused across calls so a refresh happens at most
// once per expiry.
//
// # Pagination
//
// Listing starts without a page token and follows nextPageToken until the response carries none. A token that was
// already seen in the same listing aborts with [shared.ErrPaginationLoop] instead of looping.
//
// # Error Handling
//
// Listing is all-or-nothing: a transport error, a non-2xx answer or an undecodable page returns a nil slice and an
// error wrapping [shared.ErrListingFailed]. Entries whose snippet.resourceId.videoId is missing are skipped.
//
// Insertion failures are returned as [*APIError] when the API answered. Its Message and Reason come from
// error.message and error.errors[0].reason; a body that isn't JSON yields a generic "could not parse" notice.
//   - 401 unwraps to [shared.ErrTokenExpired]
//   - every other status unwraps to [shared.ErrAPIRequest]
//
// # Pacing
//
// An optional [rate.Limiter] spaces out every request when requests_per_second is configured. The fixed pause
// between insertions belongs to the transfer engine, not to this package.
package services
