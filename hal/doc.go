// Package hal is a thin capability interface over explicit GPU APIs.
//
// It exposes devices, buffers, textures, command buffers with explicit
// resource-state transitions, and swapchain presentation, without any
// implicit state tracking. Backends implement the interfaces in this
// package and register themselves by name; the application selects one at
// startup through the registry.
package hal
