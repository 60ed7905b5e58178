/*
Package unixv6 implements read-only access to the file system used by Unix
version 6.

The original documentation can be found here: http://man.cat-v.org/unix-6th/5/fs

The driver resolves inumbers and logical file offsets to physical sectors,
scans directories, and walks absolute pathnames. It deliberately implements no
write path: the Sixth Edition format offers no redundancy whatsoever, so a
buggy writer silently destroys data, and nothing this module is used for needs
one.

One behavior worth calling out: a block index that falls inside a file's
declared size but whose address pointer is zero (a hole) is reported as an
error rather than synthesized as a sector of zeroes. V6's own write path
never created holes, so any encountered in the wild are damage, not sparse
files.
*/
package unixv6
