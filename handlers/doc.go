// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP layer: thin translators between requests
and the session, vote, and round services. Each handler parses and validates
input, calls the service, and maps its sentinel errors onto status codes.
Conflict responses include a machine-readable code field.
*/
package handlers
