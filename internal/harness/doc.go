// Package harness runs scripted operator sessions against a complete
// in-process compositor and checks the outcome.
//
// A session drives the same console, instruction store, executor and
// output routing that "layercast run" wires together. The camera, image
// catalog and output surfaces are deterministic fakes, and edits are
// journaled into an in-memory SQLite database.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: delete_prunes_draw
//	description: "Deleting a definition removes the draw that used it"
//	camera: { width: 8, height: 6, color: [0, 0, 255, 255] }
//	images:
//	  logo.png: { width: 4, height: 4, color: [255, 0, 0, 255] }
//	files:
//	  show.inli: |
//	    layer a camera
//	    20 201
//	steps:
//	  - command: layer a camera
//	  - command: draw a
//	  - render: 1
//	  - command: delete 0
//	assertions:
//	  - type: final_list
//	    commands: []
//	  - type: output_contains
//	    text: "Irrelevant instruction removed: draw a"
//
// # Assertion Types
//
//   - final_list: the instruction list after the last step, as commands
//   - output_contains: some console output contains text
//   - drawn: the layers drawn in one rendered frame, in order
//   - pixel: one pixel of the vive or monitor surface after the last step
//   - journal_replays: replaying the journal rebuilds the final list
//   - edit_count: the number of journaled edits
//
// Console output is recorded per command with the session's working
// directory replaced by "$DIR", so transcripts can be compared against
// golden files in testdata/golden.
package harness
