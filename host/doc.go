// Package host connects a canvas to the application that embeds it: image
// storage, uploads, the host mask editor and the per-node payload inbox.
//
// Nothing here imports the canvas package. The bridge and sender work
// against small interfaces that *canvas.Canvas satisfies, so tests can
// drive them with fakes.
package host
