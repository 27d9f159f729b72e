// Package input turns drag-and-drop events into queue drops.
//
// An Adapter receives DragStart, DragEnd, DragOver and Drop events. Drag start
// and end toggle the grabbing marker on the palette original, drag over always
// allows the drop, and a drop clones a fresh figure handle from the catalog
// and hands it to the workflow. Events can be produced programmatically or
// parsed from text lines such as "drag square" and "drop circle".
package input
