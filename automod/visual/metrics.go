package visual

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ocrAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "modbot_ocr_api_duration_sec",
	Help: "Duration of OCR text-extraction API calls",
})

var ocrAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_ocr_api_count",
	Help: "Number of OCR text-extraction API calls, by HTTP status code",
}, []string{"status"})
