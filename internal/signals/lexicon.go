package signals

import "regexp"

// #region lexicon

// Lexicon bundles the keyword sets and structural patterns used for scoring.
// Keyword sets mix English and Chinese; swap the lexicon to add languages
// without touching the scoring logic.
type Lexicon struct {
	Decomposition []string
	DecompPattern *regexp.Regexp

	Goal              []string
	MeasurablePattern *regexp.Regexp

	Strategy []string

	RolePreparation       []string
	ContextPreparation    []string
	ConstraintPreparation []string

	Verification []string
	QualityCheck []string
	Context      []string

	Evaluation []string
	Reflection []string
	Capability []string

	Refinement []string

	Skepticism []string
	Delegation []string

	LowReliance  []string
	HighReliance []string

	CriticalRisk []string
	HighRisk     []string
	Irreversible []string
}

// #endregion lexicon

// #region default-lexicon

// DefaultLexicon returns the built-in bilingual keyword sets.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Decomposition: []string{
			"step", "first", "then", "next", "finally", "break down", "subtask",
			"步骤", "第一步", "首先", "然后", "接着", "最后", "分步", "分解",
		},
		DecompPattern: regexp.MustCompile(`(?i)step \d|第[一二三四五六七八九十]步|^\d[.)]|\n\d[.)]`),

		Goal: []string{
			"goal", "want to", "need to", "achieve", "should be", "aim",
			"目标", "希望", "想要", "达到", "实现", "完成",
		},
		MeasurablePattern: regexp.MustCompile(`(?i)\d+%|\d+ words|\d+字|\d+分钟|\d+ms|deadline|截止|accuracy|准确率`),

		Strategy: []string{
			"strategy", "approach", "plan", "method", "alternatively", "another way",
			"策略", "方法", "计划", "方案", "或者", "备选",
		},

		RolePreparation: []string{
			"you are", "act as", "as a", "your role", "pretend",
			"你是", "作为", "扮演", "假设你是", "你的角色",
		},
		ContextPreparation: []string{
			"background", "context", "for example", "for instance", "audience",
			"背景", "上下文", "例如", "受众", "面向",
		},
		ConstraintPreparation: []string{
			"constraint", "must not", "don't", "only", "requirement", "limit to",
			"约束", "要求", "不要", "只", "限制", "条件",
		},

		Verification: []string{
			"is this correct", "are you sure", "verify", "double check", "confirm",
			"can you check", "is that right", "make sure",
			"验证", "确认", "核实", "真的吗", "确定吗", "有把握吗",
		},
		QualityCheck: []string{
			"wrong", "error", "mistake", "fix", "incorrect", "should be", "please fix",
			"不对", "错了", "有问题", "修改", "改一下", "检查", "修正",
		},
		Context: []string{
			"as mentioned", "earlier", "previously", "above", "so far", "review",
			"之前", "刚才", "上面", "前面", "回顾", "总结一下",
		},

		Evaluation: []string{
			"good", "bad", "satisfied", "quality", "better", "worse", "not quite",
			"好", "不好", "可以", "不行", "满意", "质量", "不错",
		},
		Reflection: []string{
			"i think", "i understand", "i see", "that makes sense", "in other words",
			"i realized", "so basically", "let me try",
			"我觉得", "我明白", "我理解", "原来如此", "换句话说", "我试试",
		},
		Capability: []string{
			"can you", "you are good at", "limitation", "knowledge cutoff",
			"you might not know", "beyond your",
			"你能", "你擅长", "你的局限", "知识截止", "你可能不知道",
		},

		Refinement: []string{
			"change", "modify", "adjust", "revise", "instead", "try again",
			"different", "another way", "rewrite",
			"换个方式", "重新", "调整", "改变", "再试", "另一个方法",
		},

		Skepticism: []string{
			"are you sure", "really", "doubt", "i'll verify", "source",
			"真的吗", "怀疑", "我再查一下", "来源",
		},
		Delegation: []string{
			"you handle", "i will", "i'll do", "this part myself", "my job",
			"你负责", "我负责", "这部分我来", "我自己",
		},

		LowReliance: []string{
			"i'll do it myself", "let me try", "i will write", "i'll verify",
			"just give me hints", "don't write it for me",
			"我自己来", "我自己写", "我来试试", "给我提示就行",
		},
		HighReliance: []string{
			"do it for me", "write the whole", "just give me the answer",
			"complete code", "do everything", "generate the full",
			"帮我写", "直接给我", "全部写好", "完整代码", "都帮我做",
		},

		CriticalRisk: []string{
			"delete all", "drop table", "production", "rm -rf", "payment",
			"transfer money", "migrate the database", "credentials",
			"删除所有", "生产环境", "转账", "数据库迁移",
		},
		HighRisk: []string{
			"submit", "send the email", "publish", "deploy", "deadline", "exam",
			"提交", "发布", "上线", "截止", "考试",
		},
		Irreversible: []string{
			"delete", "remove permanently", "drop", "overwrite", "can't undo",
			"irreversible", "删除", "覆盖", "撤不回", "不可恢复",
		},
	}
}

// #endregion default-lexicon
