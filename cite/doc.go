// Package cite aligns answer spans against reference sources and returns
// character-accurate citations.
//
// An Aligner windows each source into overlapping sentence passages,
// selects candidate passages by lexical overlap and optional embedding
// similarity, aligns span tokens against every candidate with a local
// alignment kernel, and reduces the alignments to ranked, deduplicated
// citations carrying exact document offsets.
package cite
