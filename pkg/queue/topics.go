// Package queue 定义消息主题常量与分组，供发布/订阅使用.
package queue

// 主题命名规范：fv.<域>.<动作>，尽量稳定且向后兼容.
// 域：file(文件)、folder(文件夹)、trash(回收站)
// 动作：stored/moved/renamed/copied/trashed/restored/deleted/accessed/purged

const (
	// 文件领域.
	TopicFileStored   = "fv.file.stored"   // 文件写入对象存储且元数据落库
	TopicFileMoved    = "fv.file.moved"    // 文件移动到其他文件夹
	TopicFileRenamed  = "fv.file.renamed"  // 文件改名（对象键同步变更）
	TopicFileCopied   = "fv.file.copied"   // 文件复制产生新记录
	TopicFileTrashed  = "fv.file.trashed"  // 文件进入回收站，配额已释放
	TopicFileRestored = "fv.file.restored" // 文件从回收站恢复，配额重新占用
	TopicFileDeleted  = "fv.file.deleted"  // 文件被物理删除（含对象）
	TopicFileAccessed = "fv.file.accessed" // 文件被下载或预览

	// 文件夹领域.
	TopicFolderCreated = "fv.folder.created" // 文件夹创建
	TopicFolderMoved   = "fv.folder.moved"   // 文件夹移动（通过环检测）
	TopicFolderDeleted = "fv.folder.deleted" // 文件夹及子树被删除

	// 回收站领域.
	TopicTrashPurged = "fv.trash.purged" // 定时任务清除超期回收站文件
)

// 主题分组，用于批量操作或权限控制.
var (
	// 文件相关主题集合.
	FileTopics = []string{
		TopicFileStored, TopicFileMoved, TopicFileRenamed,
		TopicFileCopied, TopicFileTrashed, TopicFileRestored,
		TopicFileDeleted, TopicFileAccessed,
	}

	// 文件夹相关主题集合.
	FolderTopics = []string{
		TopicFolderCreated, TopicFolderMoved, TopicFolderDeleted,
	}
)
