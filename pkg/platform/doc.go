// SPDX-License-Identifier: MPL-2.0

// Package platform identifies the host operating system and the system
// package manager available on it.
//
// Detection is the only place the orchestrator branches on the host: the
// install strategy for uv and the OpenMC build prerequisites both key off the
// Host value returned by Detect.
package platform
