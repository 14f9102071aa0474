// Package compiler schedules the front-end passes over a tree of cplus units.
//
// Pipeline per unit: dependency pre-pass (include headers) → queue the
// dependencies ahead of the unit → Parse → Resolve names → symbol table.
//
// The scheduler keeps a wait queue with a cursor on the unit in progress and
// a cache of compiled tables keyed by unit path. A dependency that is already
// in progress when it is reached again closes an import cycle; names that
// unit should provide are deferred until it compiles.
package compiler
