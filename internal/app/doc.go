// Package app wires ohttpc's dependencies and runs one batch.
//
// Config carries every option after layering (defaults, settings file,
// environment, flags). NewWire builds the concrete logger, HTTP client,
// relay client, encapsulator, metrics and reporter from it, and App.Run
// performs the fatal pre-dispatch checks before handing the canonical
// request to the dispatcher.
package app
