// SPDX-License-Identifier: MPL-2.0

// Package menu implements the interactive read-eval loop over the action menu.
//
// A Prompter shows the menu and returns one raw selection; LinePrompter reads
// a line of input and SurveyPrompter offers an arrow-key picker. The Loop
// parses the selection, dispatches it and reports the outcome until the user
// exits, input ends or an action fails fatally.
package menu
