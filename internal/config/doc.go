// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package config defines the format-agnostic release configuration model.
//
// Why have a neutral model?
//
// A release definition can arrive as HCL or YAML. Decoding is the job of the
// format adapters (internal/hclconfig, internal/yamlconfig); everything past
// the loaders — matrix expansion, the per-target drivers, the publish gate —
// only ever sees this model. The Loader interface is the seam between the
// two worlds, which also makes every downstream component testable with a
// hand-built Model and no parser in sight.
package config
