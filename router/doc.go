// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires services and handlers onto a ServeMux. The composition
here is the dependency graph: one coordinator serves both the timer and the
host-facing round endpoints, and one hub carries every broadcast.
*/
package router
