// Package events decouples services from the background job machinery:
// services emit events, and registered handlers decide what work to enqueue.
package events
