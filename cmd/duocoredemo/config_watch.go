// config_watch.go: hot-reloadable simulation parameters via argus.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"encoding/json"
	"fmt"

	"github.com/agilira/argus"
)

// simParamsFile is the on-disk shape watched by watchSimParams; a
// human can edit either field while the scenario runs and the running
// producer/consumer loop picks up the new rate on its next cycle.
type simParamsFile struct {
	ProducerRateMS int `json:"producer_rate_ms"`
	ConsumerRateMS int `json:"consumer_rate_ms"`
}

// watchSimParams arms an argus watcher over path, applying every
// parsed update to params in place. The returned stop func releases
// the watcher; callers should defer it.
func watchSimParams(path string, params *simParams) (func(), error) {
	watcher := argus.New(argus.Config{
		PollInterval: 0, // argus default poll interval
	})

	err := watcher.Watch(path, func(event argus.ChangeEvent) {
		var parsed simParamsFile
		if err := json.Unmarshal(event.Data, &parsed); err != nil {
			return
		}
		if parsed.ProducerRateMS > 0 {
			params.producerRateMS = parsed.ProducerRateMS
		}
		if parsed.ConsumerRateMS > 0 {
			params.consumerRateMS = parsed.ConsumerRateMS
		}
	})
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	if err := watcher.Start(); err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}

	return func() { _ = watcher.Stop() }, nil
}
