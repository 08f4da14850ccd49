package threatsignal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifierAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "modbot_classifier_api_duration_sec",
	Help: "Duration of hosted classifier API calls",
})

var classifierAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_classifier_api_count",
	Help: "Number of hosted classifier API calls, by HTTP status code",
}, []string{"status"})

var perspectiveAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "modbot_perspective_api_duration_sec",
	Help: "Duration of Perspective API calls",
})

var perspectiveAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_perspective_api_count",
	Help: "Number of Perspective API calls, by HTTP status code",
}, []string{"status"})
