// Package platforms implements the paginated "saved tracks" readers for each supported streaming platform.
//
// # Clients
//
// The set of platforms is closed. [Client] can only be implemented inside this package:
//   - [DeezerClient] authenticates with a browser session cookie and user id; Authorize only validates them.
//   - [SpotifyClient] obtains an authorization code through a [CodeSource] and exchanges it with HTTP Basic
//     client authentication.
//   - [YouTubeClient] obtains an authorization code the same way and sends both the bearer token and an API key.
//     Unless a playlist id is configured it looks up the liked videos playlist before the first page.
//
// [New] builds a client from a [Kind] and is exhaustive over the set.
//
// # Pagination
//
// Every client pages with an opaque [Cursor] and a fixed [PageSize]. The zero cursor asks for the first page
// and, when returned in [Page.Next], signals the end. [FetchAll] drives the loop sequentially.
//
// # Errors
//
// Clients return [shared.Error] values: transport errors for network failures and non-2xx statuses, parse
// errors for bodies that do not match the expected shape, authorization errors for rejected codes or fetches
// before Authorize, and config errors for missing credentials. Nothing is retried.
package platforms
