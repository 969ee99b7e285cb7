package llm

import (
	"fmt"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// Per call temperatures.
const (
	analyzeTemperature = 0.5
	searchTemperature  = 0.2
	quizTemperature    = 0.8
	chatTemperature    = 0.7
)

type schemaText struct {
	wasteType, material, recyclable, instructions, funFact, imageURL string
	quizItem, quizImagePrompt, quizQuestion, quizOptions             string
	quizCorrect, quizExplanation                                     string
}

var schemaTexts = map[model.Language]schemaText{
	model.LanguageVietnamese: {
		wasteType:       `Tên phổ biến của vật thể (ví dụ: "Chai nước nhựa", "Báo cũ", hoặc "Human" nếu phát hiện người).`,
		material:        `Vật liệu chính của vật thể (ví dụ: "Nhựa PET", "Giấy", "Con người").`,
		recyclable:      `Vật thể có thể tái chế được không. "Conditional" có nghĩa là tùy thuộc vào cơ sở địa phương. Đối với con người, hãy trả về "Yes".`,
		instructions:    "Hướng dẫn xử lý rác thải. Nếu phát hiện người, hãy trả về một lời khen ngợi thân thiện và độc đáo.",
		funFact:         "Một sự thật thú vị. Nếu phát hiện người, hãy cung cấp một sự thật thú vị về con người.",
		imageURL:        "URL hình ảnh minh họa chất lượng cao, công khai, trỏ trực tiếp đến tệp ảnh (.jpg, .png). Nếu phát hiện người hoặc không có ảnh phù hợp, trả về chuỗi rỗng.",
		quizItem:        "Tên của vật thể rác hoặc khái niệm.",
		quizImagePrompt: "Tùy chọn. Một prompt ngắn gọn để tạo hình ảnh vật thể trên nền trắng. CHỈ dành cho một số câu hỏi đầu tiên.",
		quizQuestion:    "Câu hỏi trắc nghiệm về cách xử lý vật thể này hoặc một khái niệm liên quan.",
		quizOptions:     "Một mảng gồm 3-4 lựa chọn trả lời.",
		quizCorrect:     "Câu trả lời đúng, trùng khớp chính xác với một lựa chọn.",
		quizExplanation: "Giải thích ngắn gọn tại sao câu trả lời đó đúng.",
	},
	model.LanguageEnglish: {
		wasteType:       `Common name of the object (e.g., "Plastic bottle", "Old newspaper", or "Human" if a person is detected).`,
		material:        `Main material of the object (e.g., "PET Plastic", "Paper", "Human").`,
		recyclable:      `Is the object recyclable. "Conditional" means it depends on local facilities. For humans, return "Yes".`,
		instructions:    "Instructions for waste disposal. If a person is detected, return a friendly and unique compliment.",
		funFact:         "An interesting fun fact. If a person is detected, provide a fun fact about humans.",
		imageURL:        "A high-quality, publicly accessible URL pointing directly to an image file (.jpg, .png) of the object. If a person is detected or no suitable image is found, return an empty string.",
		quizItem:        "The name of the waste item or concept.",
		quizImagePrompt: "Optional. A short, clear prompt to generate a picture of the item on a white background. ONLY provide for the first few questions.",
		quizQuestion:    "A multiple-choice question about how to dispose of this item or a related concept.",
		quizOptions:     "An array of 3-4 answer choices.",
		quizCorrect:     "The exact correct answer from the options array.",
		quizExplanation: "A brief explanation of why the answer is correct.",
	},
}

func textsFor(lang model.Language) schemaText {
	if t, ok := schemaTexts[lang]; ok {
		return t
	}
	return schemaTexts[model.DefaultLanguage]
}

func str(desc string) map[string]any {
	return map[string]any{"type": "STRING", "description": desc}
}

func wasteListSchema(lang model.Language) map[string]any {
	d := textsFor(lang)
	return map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"wasteType": str(d.wasteType),
				"material":  str(d.material),
				"recyclable": map[string]any{
					"type":        "STRING",
					"enum":        []string{"Yes", "No", "Conditional"},
					"description": d.recyclable,
				},
				"disposalInstructions": str(d.instructions),
				"funFact":              str(d.funFact),
				"imageUrl":             str(d.imageURL),
			},
			"required": []string{"wasteType", "material", "recyclable", "disposalInstructions", "funFact", "imageUrl"},
		},
	}
}

func quizSchema(lang model.Language) map[string]any {
	d := textsFor(lang)
	return map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"itemName":     str(d.quizItem),
				"imagePrompt":  str(d.quizImagePrompt),
				"questionText": str(d.quizQuestion),
				"options": map[string]any{
					"type":        "ARRAY",
					"description": d.quizOptions,
					"items":       map[string]any{"type": "STRING"},
				},
				"correctAnswer": str(d.quizCorrect),
				"explanation":   str(d.quizExplanation),
			},
			"required": []string{"itemName", "questionText", "options", "correctAnswer", "explanation"},
		},
	}
}

func expertInstructions(opts Options, detailed bool) string {
	vi := opts.Language == model.LanguageVietnamese
	switch {
	case opts.ExpertMode && vi && detailed:
		return "Cung cấp thông tin ở mức độ chuyên gia. Trong 'disposalInstructions', hãy bao gồm các chi tiết kỹ thuật như mã tái chế (ví dụ: PET 1, HDPE 2) và các quy trình xử lý công nghiệp. Trong 'funFact', hãy cung cấp các dữ kiện khoa học hoặc thống kê chuyên sâu."
	case opts.ExpertMode && vi:
		return "Cung cấp thông tin ở mức độ chuyên gia. Trong 'disposalInstructions', bao gồm chi tiết kỹ thuật như mã tái chế. Trong 'funFact', cung cấp dữ kiện khoa học chuyên sâu."
	case opts.ExpertMode && detailed:
		return "Provide expert-level information. In 'disposalInstructions', include technical details like recycling codes (e.g., PET 1, HDPE 2) and industrial processes. In 'funFact', provide in-depth scientific facts or statistics."
	case opts.ExpertMode:
		return "Provide expert-level information. In 'disposalInstructions', include technical details like recycling codes. In 'funFact', provide in-depth scientific facts."
	case vi:
		return "Cung cấp thông tin dễ hiểu cho người dùng phổ thông."
	default:
		return "Provide easy-to-understand information for the average user."
	}
}

func analyzePrompt(opts Options) string {
	extra := expertInstructions(opts, true)
	if opts.Language == model.LanguageVietnamese {
		return `Bạn là một AI chuyên gia về môi trường với độ chính xác cực cao, chuyên xác định rác thải từ hình ảnh. Hãy phân tích hình ảnh được cung cấp và trả về một mảng JSON chứa thông tin về TẤT CẢ các vật thể rác được tìm thấy. Tuân thủ NGHIÊM NGẶT các quy tắc sau theo đúng thứ tự và trả lời bằng tiếng Việt:

1. ƯU TIÊN RÁC. Luôn tìm vật thể rác trước tiên. Nếu phát hiện BẤT KỲ vật thể rác nào, câu trả lời chỉ được chứa (các) vật thể rác đó và bỏ qua mọi người trong ảnh.
2. CHỈ CÓ NGƯỜI. Nếu và CHỈ NẾU không có vật thể rác nào, bạn có thể xác định người. Trả về một đối tượng DUY NHẤT với 'wasteType' là "Human" và điền các trường khác bằng thông tin tích cực.
3. ẢNH RỖNG. Nếu ảnh không chứa rác hoặc người, trả về mảng JSON rỗng [].
4. URL HÌNH ẢNH. Với mỗi vật thể rác, tìm một URL hình ảnh minh họa chất lượng cao trỏ trực tiếp đến tệp ảnh.

Yêu cầu bổ sung: ` + extra + `
Câu trả lời chỉ được là một mảng JSON.`
	}
	return `You are a highly accurate environmental expert AI specializing in identifying waste from images. Analyze the provided image and return a JSON array describing ALL waste objects found. Strictly follow these rules in order and respond in English:

1. WASTE PRIORITY. Always look for waste objects first. If ANY waste object is detected, your response must only describe the waste object(s) and ignore any person in the image.
2. PERSON ONLY. If, and ONLY IF, no waste objects are in the image, you may identify a person. Return a SINGLE object with 'wasteType' as "Human" and fill the other fields with positive information.
3. EMPTY IMAGE. If the image contains no clear waste or people, return an empty JSON array [].
4. QUALITY IMAGE URL. For each waste item, find a high-quality illustrative image URL that points directly to an image file.

Additional requirement: ` + extra + `
Your response must be only a JSON array.`
}

func searchPrompt(query string, opts Options) string {
	extra := expertInstructions(opts, false)
	if opts.Language == model.LanguageVietnamese {
		return fmt.Sprintf(`Bạn là một AI trợ lý chuyên gia về môi trường. Dựa trên truy vấn tìm kiếm của người dùng: %q, hãy cung cấp thông tin phân loại rác chi tiết và chính xác bằng tiếng Việt.
1. Xác định: phân tích truy vấn để xác định (các) vật thể rác chính.
2. Thu thập dữ liệu: cung cấp thông tin chi tiết cho TỪNG vật thể. %s
3. Tìm hình ảnh: với MỖI vật thể, tìm một URL hình ảnh minh họa chất lượng cao trỏ trực tiếp đến tệp ảnh.
4. Định dạng: chỉ trả lời bằng một mảng JSON. Nếu không có kết quả, trả về [].`, query, extra)
	}
	return fmt.Sprintf(`You are an expert environmental AI assistant. Based on the user's search query: %q, provide detailed and accurate waste classification information in English.
1. Identify: analyze the query to identify the main waste object(s).
2. Gather data: provide detailed info for EACH object. %s
3. Find image: for EACH object, find a high-quality illustrative image URL that is a direct link to an image file.
4. Format: respond only with a JSON array. If no results, return [].`, query, extra)
}

var quizLevels = map[string][2]string{
	"easy":   {"dễ, phù hợp với người mới bắt đầu", "easy, suitable for beginners"},
	"medium": {"trung bình, phù hợp với người dùng phổ thông", "of medium difficulty, suitable for a general audience"},
	"hard":   {"khó, dành cho chuyên gia, bao gồm các chi tiết kỹ thuật", "difficult, expert-level, including technical details"},
}

func quizPrompt(req QuizRequest, lang model.Language) string {
	level, ok := quizLevels[req.Difficulty]
	if !ok {
		level = quizLevels["medium"]
	}
	plain := req.Questions - req.ImageQuestions
	if lang == model.LanguageVietnamese {
		return fmt.Sprintf(`Tạo một bài trắc nghiệm gồm %d câu hỏi về phân loại và tái chế rác thải bằng tiếng Việt.
- Các câu hỏi phải ở mức độ %s.
- %d câu hỏi ĐẦU TIÊN phải về các vật thể cụ thể và PHẢI có 'imagePrompt'.
- %d câu hỏi SAU CÙNG là kiến thức chung và KHÔNG được có 'imagePrompt'.
CHỈ trả lời bằng một mảng JSON.`, req.Questions, level[0], req.ImageQuestions, plain)
	}
	return fmt.Sprintf(`Create a quiz of %d questions about waste classification and recycling in English.
- The questions must be %s.
- The FIRST %d questions must be about specific items and MUST have an 'imagePrompt'.
- The LAST %d questions must be general knowledge and must NOT have an 'imagePrompt'.
ONLY respond with a JSON array.`, req.Questions, level[1], req.ImageQuestions, plain)
}

func chatSystemPrompt(item string, lang model.Language) string {
	if lang == model.LanguageVietnamese {
		return fmt.Sprintf("Bạn là một AI trợ lý môi trường thân thiện và hữu ích, chuyên gia về loại rác có tên %q. Hãy trả lời các câu hỏi của người dùng về vật thể này một cách ngắn gọn, dễ hiểu và chính xác bằng tiếng Việt. Không bao giờ thay đổi chủ đề.", item)
	}
	return fmt.Sprintf("You are a friendly and helpful environmental AI assistant, an expert on the waste type named %q. Answer user questions about this item concisely, simply and accurately in English. Never change the topic.", item)
}
