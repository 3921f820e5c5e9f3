// Package models defines the catalog entities shared by platforms, the merge engine and the stores.
//
// [MusicRecord] is the unit of the catalog. Two records are the same song when their [Key] matches:
// the title and author, trimmed and lowercased. Other fields never take part in identity.
//
// [Compare] is the catalog's total order: author, then title, then url, thumbnail, date and album,
// with a missing optional field ordered before any present one.
//
// [Run] is the only persistent entity. It implements [Model] and is stored through a [Repository].
package models
