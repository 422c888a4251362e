package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acvora_requests_total",
		Help: "The total number of processed API requests",
	}, []string{"route"})
	reloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acvora_catalog_reloads_total",
		Help: "The total number of catalog reloads",
	})
	liveExams = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acvora_live_exams_total",
		Help: "The total number of accepted live exam submissions",
	})
	catalogSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "acvora_catalog_size",
		Help: "Number of records in the last loaded collection",
	}, []string{"collection"})
)
