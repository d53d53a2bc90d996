package excel

// Column headers of the alumni survey export.
const (
	HeaderSubmissionTime  = "提交时间（自动）"
	HeaderName            = "姓名（必填）"
	HeaderGender          = "性别（必填）"
	HeaderCohort          = "期数（必填）"
	HeaderMajor           = "本科专业（必填）"
	HeaderEmail           = "电子邮箱（必填）"
	HeaderCity            = "当前所在城市"
	HeaderIndustry        = "当前工作行业"
	HeaderOccupation      = "当前职业"
	HeaderBioZh           = "请填写一段简短的自我介绍（中文）"
	HeaderBioEn           = "请填写一段简短的自我介绍（英文）"
	HeaderAllowBio        = "您是否愿意在校友网站上展示自我介绍？（必填）"
	HeaderAllowPhoto      = "您是否愿意在校友网站上展示个人照片？（必填）"
	HeaderWebsite         = "个人网站链接（如有）"
	HeaderWebsiteConsent  = "您是否愿意将个人网站链接展示于公开校友网站？"
	HeaderPhoto           = "个人照片"
	HeaderSubmissionEmail = "提交者（自动）"
)

var EducationHeaders = [...]string{
	"教育经历1（ZJU本科后）",
	"教育经历2（如有）",
	"教育经历3（如有）",
	"教育经历4（如有）",
	"教育经历5（如有）",
}

var ExperienceHeaders = [...]string{
	"工作经历1（当前职业之前）",
	"工作经历2（如有）",
	"工作经历3（如有）",
	"工作经历4（如有）",
	"工作经历5（如有）",
}

// Column headers of the external resource list.
const (
	HeaderResourceTitle     = "标题"
	HeaderResourceType      = "推文类型"
	HeaderResourcePublished = "推文发布日期"
	HeaderResourceURL       = "推文链接"
	HeaderResourceSummary   = "推文简介"
	HeaderResourceYear      = "年份"
)
