package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var gatewayConnects = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_gateway_connects",
	Help: "Number of gateway connection attempts",
})

var gatewayDisconnects = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_gateway_disconnects",
	Help: "Number of gateway disconnections",
})
