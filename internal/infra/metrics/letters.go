package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		lettersTotal,
		letterMediaBytes,
	)
}

var (
	// Letter operations by action (create|delete) and result (ok|denied|error).
	lettersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letters_total",
			Help: "Letter operations by action and result.",
		},
		[]string{"action", "result"},
	)

	letterMediaBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "letter_media_bytes_total",
			Help: "Total bytes of letter media uploaded to object storage.",
		},
	)
)

func IncLetter(action, result string) {
	lettersTotal.WithLabelValues(norm(action), norm(result)).Inc()
}

func AddLetterMediaBytes(n int64) {
	letterMediaBytes.Add(float64(n))
}
