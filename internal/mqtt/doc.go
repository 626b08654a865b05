// Package mqtt connects huemqtt to an MQTT broker.
//
// It owns the liveness contract of the bridge on the bus:
//
//	<base>/status = "1"  on every (re)connect and on every heartbeat tick
//	<base>/status = "0"  as last will, published by the broker on unclean disconnect
//
// Both are published with QoS 2 and the retained flag, so late subscribers see
// the current liveness immediately. Subscriptions are tracked and restored
// after a reconnect.
package mqtt
