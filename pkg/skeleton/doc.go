// Package skeleton compiles a module graph into a static joint
// hierarchy. Compilation orders canonical modules before their mirror
// peers, derives mirror-side joints by reflecting the canonical chain,
// attaches chains per their parent edges, and gathers the rest under a
// single top-level root. A Snapshot taken at compile time allows the
// skeleton to be decompiled back into an equivalent module graph.
package skeleton
