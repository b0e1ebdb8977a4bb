package score

// Config holds the posting keywords and rule file settings.
type Config struct {
	// Keyword marks a chat message as a score posting.
	Keyword string `mapstructure:"keyword" default:"御無礼"`
	// RemarksWord marks a thread reply as a remark posting.
	RemarksWord string `mapstructure:"remarks_word" default:"麻雀成績メモ"`
	// RuleFile is the YAML file holding rule versions and member aliases.
	RuleFile string `mapstructure:"rule_file" default:"rules.yaml"`
	// RuleVersion selects the active rule from the rule file.
	RuleVersion string `mapstructure:"rule_version" default:""`
}
