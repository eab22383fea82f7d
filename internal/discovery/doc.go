// Package discovery keeps the ring's server set in line with the healthy
// instances of a Consul service, and registers ringd itself in Consul.
//
// Only servers added by the syncer are ever removed by it. Servers
// registered statically or over RPC are left alone.
package discovery
