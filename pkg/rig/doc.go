// Package rig defines the module data model: descriptors, built module
// instances, the module graph that owns them, and the parentage edges
// between them. Placement math lives in pkg/builder, mirror rules in
// pkg/mirror, and skeleton output in pkg/skeleton.
package rig
