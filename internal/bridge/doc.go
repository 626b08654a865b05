// Package bridge keeps the MQTT bus in sync with a polled Hue controller.
//
// Outbound, a poll loop fetches every light and group, runs each through
// change detection and publishes the ones that changed as retained messages.
// Inbound, set-commands received from the bus are parsed by the router and
// applied to the controller through a single sequential command queue; the
// controller's post-write state then goes through the same detection and
// publish path.
//
// The engine never issues two concurrent writes to the controller. Commands
// for lights and groups share one queue and are applied in arrival order.
package bridge
