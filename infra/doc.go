// Package infra contains technical adapters such as the backend store
// client, the MQTT change subscriber and metrics exporters. These packages
// should depend only on the interfaces defined in the core packages.
package infra
