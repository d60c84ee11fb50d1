/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package restapi writes JSON responses and error envelopes of the form
// {"error": {"domain": "...", "code": "...", "message": "..."}}.
package restapi
