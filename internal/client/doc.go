// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the runtime of the offline-first client daemon.
//
// It wires local storage, the remote adapter, the sync services, the event
// bus and metrics, and runs the scheduler, the connectivity monitor and the
// local API as one worker group.
package client
