package platform

// Package platform contains OS integration glue: the standard movie and
// project folders, file copying, unique output names, and registering finished
// movies with the system gallery.
