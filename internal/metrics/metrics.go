// Package metrics exposes application metrics collectors.
package metrics

import "github.com/goodnatureofminers/hybridconsensus/internal/model"

const namespace = "hybridconsensus"

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func networkLabel(network model.Network) model.Network {
	if network == "" {
		return "unknown"
	}
	return network
}
