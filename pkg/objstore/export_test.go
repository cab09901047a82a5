package objstore

// Commit exposes the rename step for race tests.
var Commit = commit
