package errors

import "google.golang.org/grpc/codes"

// Docs 服务代码: 21 (业务服务范围 20-79)
// 错误码格式: AABBCCC
// - AA: 21 (文档服务)
// - BB: 类别代码
// - CCC: 序号

const (
	// ServiceDocs is for the document ingestion and retrieval service.
	ServiceDocs = 21
)

func init() {
	RegisterService(ServiceDocs, "chopper-docs")
}

var (
	// 请求参数错误 (类别 01)
	ErrDocInvalidRequest    = Register(New(MakeCode(ServiceDocs, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid request parameters", "请求参数无效"))
	ErrDocUnsupportedFormat = Register(New(MakeCode(ServiceDocs, CategoryRequest, 2), 415, codes.InvalidArgument, "Unsupported document format", "不支持的文档格式"))
	ErrDocEmpty             = Register(New(MakeCode(ServiceDocs, CategoryRequest, 3), 400, codes.InvalidArgument, "Document is empty", "文档为空"))
	ErrDocTooLarge          = Register(New(MakeCode(ServiceDocs, CategoryRequest, 4), 413, codes.InvalidArgument, "Document exceeds size limit", "文档超出大小限制"))

	// 文本提取错误 (类别 07 - Internal)
	ErrDocExtractionFailed   = Register(New(MakeCode(ServiceDocs, CategoryInternal, 1), 422, codes.Internal, "Document text extraction failed", "文档文本提取失败"))
	ErrDocNoExtractableText  = Register(New(MakeCode(ServiceDocs, CategoryInternal, 2), 422, codes.FailedPrecondition, "No extractable text in document", "文档中没有可提取的文本"))
	ErrDocEmbeddingFailed    = Register(New(MakeCode(ServiceDocs, CategoryInternal, 3), 500, codes.Internal, "Embedding generation failed", "向量生成失败"))
	ErrDocIngestFailed       = Register(New(MakeCode(ServiceDocs, CategoryInternal, 4), 500, codes.Internal, "Document ingestion failed", "文档摄取失败"))

	// 索引存储错误 (类别 08 - Database)
	ErrDocIndexWriteFailed = Register(New(MakeCode(ServiceDocs, CategoryDatabase, 1), 500, codes.Internal, "Vector index write failed", "向量索引写入失败"))
	ErrDocIndexQueryFailed = Register(New(MakeCode(ServiceDocs, CategoryDatabase, 2), 500, codes.Internal, "Vector index query failed", "向量索引查询失败"))
	ErrDocNotFound         = Register(New(MakeCode(ServiceDocs, CategoryResource, 1), 404, codes.NotFound, "Document not found", "文档不存在"))

	// 配置错误 (类别 12 - Config)
	ErrDocConfigMissing = Register(New(MakeCode(ServiceDocs, CategoryConfig, 1), 500, codes.FailedPrecondition, "Required configuration missing", "缺少必需配置"))
)
