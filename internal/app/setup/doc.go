// SPDX-License-Identifier: MPL-2.0

// Package setup wires configuration, the environment session, bootstrap,
// the action dispatcher and the interactive menu into the orchestrator the
// CLI runs. It decouples CLI-layer flag handling from the setup sequence.
package setup
