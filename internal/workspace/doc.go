// Package workspace manages the scratch folders of a site: an ephemeral
// temp folder (generated thumbnails) removed on Cleanup, and the persistent
// render cache folder that survives restarts and is emptied with Reset.
package workspace
