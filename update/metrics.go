package update

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	channelFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "readnext_channel_fetches_total",
		Help: "Number of channel fetches by status",
	}, []string{"status"})

	itemsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readnext_items_ingested_total",
		Help: "Number of news items inserted by update cycles",
	})

	updateCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readnext_update_cycles_total",
		Help: "Number of completed update cycles",
	})
)
