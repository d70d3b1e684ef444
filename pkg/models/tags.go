package models

// CanonicalTags is the fixed genre tag set used to classify books into the
// target domain. /books/tags serves it and the litrpg/trending queries
// filter by it.
var CanonicalTags = []string{
	"LitRPG",
	"GameLit",
	"Progression",
	"Portal Fantasy / Isekai",
	"Dungeon",
	"Reincarnation",
	"Virtual Reality",
}

// CompletedTag marks finished fictions on the source site. OnlyCompleted
// searches require it (case-insensitively).
const CompletedTag = "Completed"
