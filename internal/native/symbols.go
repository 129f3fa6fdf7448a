package native

// FlatpakInstallation accessors.
var (
	InstallationGetID          = Getter("flatpak_installation_get_id")
	InstallationGetDisplayName = Getter("flatpak_installation_get_display_name")
	InstallationGetPath        = Owned("flatpak_installation_get_path")
	InstallationGetIsUser      = Getter("flatpak_installation_get_is_user")
	InstallationGetPriority    = Getter("flatpak_installation_get_priority")
)

// FlatpakRemote accessors.
var (
	RemoteGetName          = Getter("flatpak_remote_get_name")
	RemoteGetURL           = Owned("flatpak_remote_get_url")
	RemoteGetTitle         = Owned("flatpak_remote_get_title")
	RemoteGetComment       = Owned("flatpak_remote_get_comment")
	RemoteGetDescription   = Owned("flatpak_remote_get_description")
	RemoteGetHomepage      = Owned("flatpak_remote_get_homepage")
	RemoteGetIcon          = Owned("flatpak_remote_get_icon")
	RemoteGetCollectionID  = Owned("flatpak_remote_get_collection_id")
	RemoteGetDefaultBranch = Owned("flatpak_remote_get_default_branch")
	RemoteGetMainRef       = Owned("flatpak_remote_get_main_ref")
	RemoteGetFilter        = Owned("flatpak_remote_get_filter")
	RemoteGetDisabled      = Getter("flatpak_remote_get_disabled")
	RemoteGetNoDeps        = Getter("flatpak_remote_get_nodeps")
	RemoteGetNoEnumerate   = Getter("flatpak_remote_get_noenumerate")
	RemoteGetGPGVerify     = Getter("flatpak_remote_get_gpg_verify")
	RemoteGetPrio          = Getter("flatpak_remote_get_prio")
	RemoteGetType          = Getter("flatpak_remote_get_remote_type")

	RemoteSetURL           = Setter("flatpak_remote_set_url")
	RemoteSetTitle         = Setter("flatpak_remote_set_title")
	RemoteSetComment       = Setter("flatpak_remote_set_comment")
	RemoteSetDescription   = Setter("flatpak_remote_set_description")
	RemoteSetHomepage      = Setter("flatpak_remote_set_homepage")
	RemoteSetIcon          = Setter("flatpak_remote_set_icon")
	RemoteSetCollectionID  = Setter("flatpak_remote_set_collection_id")
	RemoteSetDefaultBranch = Setter("flatpak_remote_set_default_branch")
	RemoteSetMainRef       = Setter("flatpak_remote_set_main_ref")
	RemoteSetFilter        = Setter("flatpak_remote_set_filter")
	RemoteSetDisabled      = Setter("flatpak_remote_set_disabled")
	RemoteSetNoDeps        = Setter("flatpak_remote_set_nodeps")
	RemoteSetNoEnumerate   = Setter("flatpak_remote_set_noenumerate")
	RemoteSetGPGVerify     = Setter("flatpak_remote_set_gpg_verify")
	RemoteSetPrio          = Setter("flatpak_remote_set_prio")
)

// FlatpakRef accessors, shared by every ref subclass.
var (
	RefGetName         = Getter("flatpak_ref_get_name")
	RefGetArch         = Getter("flatpak_ref_get_arch")
	RefGetBranch       = Getter("flatpak_ref_get_branch")
	RefGetCommit       = Getter("flatpak_ref_get_commit")
	RefGetKind         = Getter("flatpak_ref_get_kind")
	RefGetCollectionID = Getter("flatpak_ref_get_collection_id")
	RefFormatRef       = Owned("flatpak_ref_format_ref")
)

// FlatpakInstalledRef accessors.
var (
	InstalledRefGetOrigin         = Getter("flatpak_installed_ref_get_origin")
	InstalledRefGetInstalledSize  = Getter("flatpak_installed_ref_get_installed_size")
	InstalledRefGetDeployDir      = Getter("flatpak_installed_ref_get_deploy_dir")
	InstalledRefGetLatestCommit   = Getter("flatpak_installed_ref_get_latest_commit")
	InstalledRefGetIsCurrent      = Getter("flatpak_installed_ref_get_is_current")
	InstalledRefGetSubpaths       = Getter("flatpak_installed_ref_get_subpaths")
	InstalledRefGetEOL            = Getter("flatpak_installed_ref_get_eol")
	InstalledRefGetEOLRebase      = Getter("flatpak_installed_ref_get_eol_rebase")
	InstalledRefGetAppdataName    = Getter("flatpak_installed_ref_get_appdata_name")
	InstalledRefGetAppdataSummary = Getter("flatpak_installed_ref_get_appdata_summary")
	InstalledRefGetAppdataVersion = Getter("flatpak_installed_ref_get_appdata_version")
	InstalledRefGetAppdataLicense = Getter("flatpak_installed_ref_get_appdata_license")
)

// FlatpakRemoteRef accessors.
var (
	RemoteRefGetRemoteName    = Getter("flatpak_remote_ref_get_remote_name")
	RemoteRefGetDownloadSize  = Getter("flatpak_remote_ref_get_download_size")
	RemoteRefGetInstalledSize = Getter("flatpak_remote_ref_get_installed_size")
	RemoteRefGetMetadata      = Getter("flatpak_remote_ref_get_metadata")
	RemoteRefGetEOL           = Getter("flatpak_remote_ref_get_eol")
	RemoteRefGetEOLRebase     = Getter("flatpak_remote_ref_get_eol_rebase")
)

// FlatpakBundleRef accessors.
var (
	BundleRefGetFile           = Owned("flatpak_bundle_ref_get_file")
	BundleRefGetMetadata       = Owned("flatpak_bundle_ref_get_metadata")
	BundleRefGetAppstream      = Owned("flatpak_bundle_ref_get_appstream")
	BundleRefGetOrigin         = Owned("flatpak_bundle_ref_get_origin")
	BundleRefGetRuntimeRepoURL = Owned("flatpak_bundle_ref_get_runtime_repo_url")
	BundleRefGetInstalledSize  = Getter("flatpak_bundle_ref_get_installed_size")
)

// FlatpakRelatedRef accessors.
var (
	RelatedRefGetSubpaths     = Getter("flatpak_related_ref_get_subpaths")
	RelatedRefShouldDownload  = Getter("flatpak_related_ref_should_download")
	RelatedRefShouldDelete    = Getter("flatpak_related_ref_should_delete")
	RelatedRefShouldAutoprune = Getter("flatpak_related_ref_should_autoprune")
)

// FlatpakTransaction accessors.
var (
	TransactionSetNoInteraction       = Setter("flatpak_transaction_set_no_interaction")
	TransactionSetNoDeploy            = Setter("flatpak_transaction_set_no_deploy")
	TransactionSetNoPull              = Setter("flatpak_transaction_set_no_pull")
	TransactionSetDisableDependencies = Setter("flatpak_transaction_set_disable_dependencies")
	TransactionSetDisableRelated      = Setter("flatpak_transaction_set_disable_related")
	TransactionSetReinstall           = Setter("flatpak_transaction_set_reinstall")
	TransactionIsEmpty                = Getter("flatpak_transaction_is_empty")
	TransactionGetInstallation        = Getter("flatpak_transaction_get_installation")
	TransactionGetCurrentOperation    = Owned("flatpak_transaction_get_current_operation")
)

// FlatpakTransactionOperation accessors.
var (
	OperationGetType          = Getter("flatpak_transaction_operation_get_operation_type")
	OperationGetRef           = Getter("flatpak_transaction_operation_get_ref")
	OperationGetRemote        = Getter("flatpak_transaction_operation_get_remote")
	OperationGetCommit        = Getter("flatpak_transaction_operation_get_commit")
	OperationGetBundlePath    = Getter("flatpak_transaction_operation_get_bundle_path")
	OperationGetDownloadSize  = Getter("flatpak_transaction_operation_get_download_size")
	OperationGetInstalledSize = Getter("flatpak_transaction_operation_get_installed_size")
	OperationGetIsSkipped     = Getter("flatpak_transaction_operation_get_is_skipped")
	OperationGetMetadata      = Getter("flatpak_transaction_operation_get_metadata")
)

// FlatpakTransactionProgress accessors.
var (
	ProgressGetProgress         = Getter("flatpak_transaction_progress_get_progress")
	ProgressGetStatus           = Owned("flatpak_transaction_progress_get_status")
	ProgressGetIsEstimating     = Getter("flatpak_transaction_progress_get_is_estimating")
	ProgressGetBytesTransferred = Getter("flatpak_transaction_progress_get_bytes_transferred")
	ProgressGetStartTime        = Getter("flatpak_transaction_progress_get_start_time")
	ProgressSetUpdateFrequency  = Setter("flatpak_transaction_progress_set_update_frequency")
)

// FlatpakInstance accessors.
var (
	InstanceGetID            = Getter("flatpak_instance_get_id")
	InstanceGetApp           = Getter("flatpak_instance_get_app")
	InstanceGetArch          = Getter("flatpak_instance_get_arch")
	InstanceGetBranch        = Getter("flatpak_instance_get_branch")
	InstanceGetCommit        = Getter("flatpak_instance_get_commit")
	InstanceGetRuntime       = Getter("flatpak_instance_get_runtime")
	InstanceGetRuntimeCommit = Getter("flatpak_instance_get_runtime_commit")
	InstanceGetPID           = Getter("flatpak_instance_get_pid")
	InstanceGetChildPID      = Getter("flatpak_instance_get_child_pid")
	InstanceGetInfo          = Owned("flatpak_instance_get_info")
	InstanceIsRunning        = Getter("flatpak_instance_is_running")
)

// GObject type names as reported by G_OBJECT_TYPE_NAME.
const (
	TypeInstallation = "FlatpakInstallation"
	TypeRemote       = "FlatpakRemote"
	TypeRef          = "FlatpakRef"
	TypeInstalledRef = "FlatpakInstalledRef"
	TypeRemoteRef    = "FlatpakRemoteRef"
	TypeBundleRef    = "FlatpakBundleRef"
	TypeRelatedRef   = "FlatpakRelatedRef"
	TypeTransaction  = "FlatpakTransaction"
	TypeOperation    = "FlatpakTransactionOperation"
	TypeProgress     = "FlatpakTransactionProgress"
	TypeInstance     = "FlatpakInstance"
	TypeCancellable  = "GCancellable"
	TypeFile         = "GLocalFile"
)
